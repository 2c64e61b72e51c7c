package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewDependencyHealthRepositoryValidation(t *testing.T) {
	if _, err := NewDependencyHealthRepository(nil); err == nil {
		t.Error("empty check set accepted")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: " ", Check: func(context.Context) error { return nil }}}); err == nil {
		t.Error("unnamed check accepted")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: "firestore"}}); err == nil {
		t.Error("check without function accepted")
	}
}

func TestPingAllHealthy(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "pubsub", Check: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping returned error: %v", err)
	}
}

func TestPingReportsFailingDependency(t *testing.T) {
	boom := errors.New("connection refused")
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return boom }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	pingErr := repo.Ping(context.Background())
	if pingErr == nil {
		t.Fatal("Ping succeeded, want error")
	}
	if !errors.Is(pingErr, boom) {
		t.Errorf("error does not wrap cause: %v", pingErr)
	}
	if !strings.Contains(pingErr.Error(), "firestore") {
		t.Errorf("error does not name dependency: %v", pingErr)
	}
}

func TestPingTimesOutSlowDependency(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{
			Name:    "firestore",
			Timeout: 10 * time.Millisecond,
			Check: func(ctx context.Context) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			},
		},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	if err := repo.Ping(context.Background()); err == nil {
		t.Error("Ping succeeded, want timeout error")
	}
}
