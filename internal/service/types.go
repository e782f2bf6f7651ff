package service

import "time"

// DateLayout is the day/month/year layout accepted on the command line.
const DateLayout = "02/01/2006"

// Entry is a single time-log entry.
type Entry struct {
	// Task is the local task name, TaskID the tracker id it resolves to.
	Task        string
	TaskID      string
	Date        time.Time
	Hours       float64
	Description string
}
