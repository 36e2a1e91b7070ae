package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"wabridge/internal/domain/session"
	"wabridge/internal/infra/whatsapp/connection"
	"wabridge/pkg/logger"
)

type fakeSource struct{ snap session.Snapshot }

func (f fakeSource) Snapshot() session.Snapshot { return f.snap }
func (f fakeSource) Uptime() time.Duration      { return 90 * time.Second }

type fakeCounter int

func (c fakeCounter) ActiveCount() int { return int(c) }

func TestGetStatus(t *testing.T) {
	snap := session.Snapshot{
		State:           session.StateAwaitingChallenge,
		Challenge:       &session.Challenge{Code: "2@abc"},
		AuthAttempts:    2,
		MaxAuthAttempts: 5,
	}
	uc := NewGetStatusUseCase(fakeSource{snap}, fakeCounter(3), logger.SetupForTesting())

	got := uc.Execute(context.Background())
	if got.Ready || !got.HasQRCode || got.AuthAttempts != 2 || got.ActivePresences != 3 || got.UptimeSeconds != 90 {
		t.Fatalf("Execute() = %+v", got)
	}
}

type fakeQR struct {
	data *connection.QRCodeData
}

func (f fakeQR) GetQRCodeData() (*connection.QRCodeData, error) {
	if f.data == nil {
		return nil, session.ErrQRCodeNotAvailable
	}
	return f.data, nil
}

func TestGetQRCode(t *testing.T) {
	log := logger.SetupForTesting()

	if _, err := NewGetQRCodeUseCase(fakeQR{}, log).Execute(context.Background()); !errors.Is(err, session.ErrQRCodeNotAvailable) {
		t.Fatalf("Execute() error = %v, want ErrQRCodeNotAvailable", err)
	}

	data := &connection.QRCodeData{Code: "2@abc", Image: "data:image/png;base64,xx", CreatedAt: time.Unix(0, 0)}
	got, err := NewGetQRCodeUseCase(fakeQR{data}, log).Execute(context.Background())
	if err != nil || got.Code != "2@abc" || got.CreatedAt != "1970-01-01T00:00:00Z" {
		t.Fatalf("Execute() = %+v, %v", got, err)
	}
}

type fakeLogouter struct{ err error }

func (f fakeLogouter) Logout(context.Context) error { return f.err }

func TestLogout(t *testing.T) {
	log := logger.SetupForTesting()
	if resp, err := NewLogoutUseCase(fakeLogouter{}, log).Execute(context.Background()); err != nil || resp.Status != "logged_out" {
		t.Fatalf("Execute() = %+v, %v", resp, err)
	}
	if _, err := NewLogoutUseCase(fakeLogouter{session.ErrNotConnected}, log).Execute(context.Background()); !errors.Is(err, session.ErrNotConnected) {
		t.Fatalf("Execute() error = %v, want ErrNotConnected", err)
	}
}
