package ports

import "time"

type SchedulerService interface {
	Start()
	Stop()
	// ScheduleTaskOnce runs task once after delay.
	ScheduleTaskOnce(delay time.Duration, task func()) error
}
