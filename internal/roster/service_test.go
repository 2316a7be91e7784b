package roster

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateAndAuthenticate(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	id, err := svc.Create(ctx, "r.kumar", "R. Kumar", "r.kumar@u.edu", "s3cret", RoleTeacher, "CS")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id.ID == "" {
		t.Fatal("Create() left id empty")
	}

	// Login by username and by email.
	for _, login := range []string{"r.kumar", "r.kumar@u.edu"} {
		got, err := svc.Authenticate(ctx, login, "s3cret")
		if err != nil {
			t.Errorf("Authenticate(%q) error: %v", login, err)
		}
		if got.ID != id.ID {
			t.Errorf("Authenticate(%q) returned wrong identity", login)
		}
	}

	if _, err := svc.Authenticate(ctx, "r.kumar", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("bad password = %v, want ErrBadCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "s3cret"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown login = %v, want ErrBadCredentials", err)
	}
}

func TestDuplicateRejected(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "a", "A", "a@u.edu", "pw", RoleStudent, ""); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}
	if _, err := svc.Create(ctx, "a", "A2", "other@u.edu", "pw", RoleStudent, ""); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username = %v, want ErrDuplicate", err)
	}
	if _, err := svc.Create(ctx, "b", "B", "a@u.edu", "pw", RoleStudent, ""); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email = %v, want ErrDuplicate", err)
	}
}

func TestArchiveBlocksLogin(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	id, _ := svc.Create(ctx, "a", "A", "a@u.edu", "pw", RoleStudent, "")
	if err := svc.Archive(ctx, id.ID); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a", "pw"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("archived login = %v, want ErrBadCredentials", err)
	}
	// The record survives archiving.
	if _, err := svc.Get(ctx, id.ID); err != nil {
		t.Errorf("Get(archived) = %v, want nil", err)
	}
}

func TestImportCSV(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	csvData := strings.Join([]string{
		"name,email,password,role,department",
		"Asha Rao,asha@u.edu,pw1,student,CS",
		"Vikram Iyer,vikram@u.edu,pw2,teacher,Math",
		"Broken Row,no-password@u.edu,,student,CS",
		"Bad Role,bad@u.edu,pw4,wizard,CS",
		"",
	}, "\n")

	res, err := svc.ImportCSV(ctx, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV() error: %v", err)
	}
	if res.Success != 2 || res.Failed != 2 {
		t.Errorf("ImportCSV() = %+v, want 2 success / 2 failed", res)
	}

	// Username derived from the name, lowercased and dotted.
	if _, err := svc.Authenticate(ctx, "asha.rao", "pw1"); err != nil {
		t.Errorf("imported user cannot log in: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	id, _ := svc.Create(ctx, "a", "A", "a@u.edu", "old", RoleTeacher, "")
	if err := svc.ChangePassword(ctx, id.ID, "wrong", "new"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("ChangePassword(bad old) = %v, want ErrBadCredentials", err)
	}
	if err := svc.ChangePassword(ctx, id.ID, "old", "new"); err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a", "new"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a", "old"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("old password still accepted")
	}
}
