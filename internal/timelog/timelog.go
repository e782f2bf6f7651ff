// Package timelog validates a time-log request against the stored record and
// hands it to the remote submitter.
package timelog

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"dpclient/internal/apperr"
	"dpclient/internal/record"
	"dpclient/internal/service"
)

// MaxHours is the most that can be logged in one entry.
const MaxHours = 24

// ParseDate parses a day/month/year date. Impossible dates such as
// 31/02/2024 are rejected.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(service.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.New(apperr.InvalidDate, "%q (expected dd/mm/yyyy)", s).WithTopic("log")
	}
	return d, nil
}

// ParseHours parses a positive decimal number of hours. NaN and infinities
// are rejected.
func ParseHours(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 || h > MaxHours {
		return 0, apperr.New(apperr.Usage, "hours must be a number between 0 and %d, got %q", MaxHours, s).WithTopic("log")
	}
	return h, nil
}

// FormatHours renders hours without trailing zeros.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// Log parses the raw date and hours, then submits. Checks run in order and
// the first failure wins: date, hours, task, settings. Nothing reaches the
// factory unless every check passes.
func Log(ctx context.Context, rec *record.Record, date, hours, task, description string, factory service.Factory, logger *log.Logger) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	h, err := ParseHours(hours)
	if err != nil {
		return "", err
	}
	return Submit(ctx, rec, service.Entry{
		Task:        task,
		Date:        d,
		Hours:       h,
		Description: description,
	}, factory, logger)
}

// Submit checks that entry.Task is known and the record holds server, user
// and password, then logs in and submits the entry. The record is not
// modified. Submitter failures are returned as RemoteSubmission errors and
// are not retried.
func Submit(ctx context.Context, rec *record.Record, entry service.Entry, factory service.Factory, logger *log.Logger) (string, error) {
	id, err := record.ResolveTask(rec, entry.Task)
	if err != nil {
		return "", err
	}
	if !rec.Complete() {
		return "", apperr.New(apperr.IncompleteConfig, "missing %s", strings.Join(rec.Missing(), ", ")).WithTopic("config")
	}
	entry.TaskID = id
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if factory == nil {
		return "", apperr.New(apperr.RemoteSubmission, "no submitter configured").WithTopic("log")
	}

	sub, err := factory(ctx, rec.Server)
	if err != nil {
		return "", apperr.Wrap(apperr.RemoteSubmission, err, "connect to %s", rec.Server).WithTopic("log")
	}

	logger.Debug("logging in", "server", rec.Server, "user", rec.User)
	if err := sub.Login(ctx, rec.User, rec.Password); err != nil {
		return "", apperr.Wrap(apperr.RemoteSubmission, err, "login as %s", rec.User).WithTopic("log")
	}

	logger.Debug("submitting", "task", entry.Task, "task_id", id, "date", entry.Date.Format(service.DateLayout), "hours", entry.Hours)
	if err := sub.LogTask(ctx, id, entry.Date, entry.Hours, entry.Description); err != nil {
		return "", apperr.Wrap(apperr.RemoteSubmission, err, "log task %s", entry.Task).WithTopic("log")
	}

	return "logged " + FormatHours(entry.Hours) + "h on " + entry.Task + " for " + entry.Date.Format(service.DateLayout), nil
}
