package system

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/storage"
)

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, out, _ := setupTestInitDB(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
	for _, want := range []string{
		"✓ Storage reachable: OK",
		"✓ Schema version: OK",
		"✓ Backups present: OK",
		"✓ Calendar validation: OK",
		"All checks passed",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_NoBackupsWarns(t *testing.T) {
	ctx, out, _ := setupTestInitDB(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("missing backups should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected backup warning:\n%s", out.String())
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, out, _ := setupTestInitDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("expected doctor to fail on an uninitialized store")
	}
	if !strings.Contains(out.String(), "❌ Storage reachable: FAIL") {
		t.Errorf("expected reachability failure:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "⊘ Schema version: SKIPPED") {
		t.Errorf("expected dependent checks to be skipped:\n%s", out.String())
	}
}

func TestDoctorCmd_JSONStoreSkipsSQLiteChecks(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "calendars"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(store)
	var out bytes.Buffer
	ctx.Out = &out

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
	for _, want := range []string{"⊘ Schema version: SKIPPED", "⊘ Backups present: SKIPPED"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
