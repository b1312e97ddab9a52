package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Maintain() error
	RefreshStats() error
}
