package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/agroslabs/agros/pkg/agrolib"
)

func TestPrintScheduleNotes_Cron(t *testing.T) {
	runs := []*agrolib.Run{
		{
			Id:       "run-1",
			Status:   agrolib.StatusScheduled,
			CronExpr: "0 2 * * *",
		},
	}

	stdout, _ := captureOutput(func() {
		printScheduleNotes(runs)
	})
	assertContains(t, stdout, "run-1 recurs on \"0 2 * * *\"")
}

func TestPrintScheduleNotes_StartAt(t *testing.T) {
	at := time.Date(2027, 3, 15, 6, 30, 0, 0, time.Local)
	runs := []*agrolib.Run{
		{
			Id:      "run-2",
			Status:  agrolib.StatusScheduled,
			StartAt: at,
		},
	}

	stdout, _ := captureOutput(func() {
		printScheduleNotes(runs)
	})
	assertContains(t, stdout, "run-2 starts at 2027-03-15 06:30")
}

func TestPrintScheduleNotes_CronWinsOverStartAt(t *testing.T) {
	runs := []*agrolib.Run{
		{
			Id:       "run-3",
			Status:   agrolib.StatusScheduled,
			CronExpr: "*/30 * * * *",
			StartAt:  time.Now().Add(time.Hour),
		},
	}

	stdout, _ := captureOutput(func() {
		printScheduleNotes(runs)
	})
	assertContains(t, stdout, "recurs on")
	assertNotContains(t, stdout, "starts at")
}

func TestPrintScheduleNotes_SkipsNonScheduled(t *testing.T) {
	runs := []*agrolib.Run{
		{Id: "run-4", Status: agrolib.StatusRunning, CronExpr: "0 2 * * *"},
		{Id: "run-5", Status: agrolib.StatusFinished, StartAt: time.Now()},
		{Id: "run-6", Status: agrolib.StatusScheduled},
	}

	stdout, _ := captureOutput(func() {
		printScheduleNotes(runs)
	})
	if strings.TrimSpace(stdout) != "" {
		t.Errorf("expected no notes, got %q", stdout)
	}
}
