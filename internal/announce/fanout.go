package announce

import "eduonline/internal/notify"

// FanoutJob is the queue payload asking the worker to deliver one
// notification to an audience.
type FanoutJob struct {
	Audience     Audience            `json:"audience"`
	Notification notify.Notification `json:"notification"`
}
