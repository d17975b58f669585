package constants

const (
	// Feedback tuning steps applied before a rebuild
	FeedbackDenseBufferStep   = 0.1
	FeedbackEasyBufferStep    = 0.05
	FeedbackMinTunedBuffer    = 0.05
	FeedbackMoreTimeDailyStep = 30

	// ReduceBufferThreshold is the buffer at which an unscheduled task
	// also yields a reduce_buffer suggestion
	ReduceBufferThreshold = 0.2
)
