package jobs

import "testing"

func TestCronServiceStopHaltsScheduler(t *testing.T) {
	svc := NewCronService(map[string]interface{}{
		"stock_snapshot_schedule": "0 21 * * *",
	}, nil).(*CronService)

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if svc.cron == nil {
		t.Fatal("cron instance not retained, Stop cannot halt it")
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-svc.stopCh:
	default:
		t.Error("sweeper stop channel still open after Stop")
	}
	if got := len(svc.cron.Entries()); got != 1 {
		t.Errorf("scheduled entries = %d, want 1", got)
	}
}

func TestCronServiceBadScheduleFailsStart(t *testing.T) {
	svc := NewCronService(map[string]interface{}{
		"stock_snapshot_schedule": "not a schedule",
	}, nil).(*CronService)

	if err := svc.Start(); err == nil {
		t.Fatal("expected Start to reject an unparseable schedule")
	}
}
