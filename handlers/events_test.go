package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-distribution-backend/events"
	"food-distribution-backend/models"
	"food-distribution-backend/session"

	"github.com/gorilla/websocket"
)

func TestVisible(t *testing.T) {
	staff := &session.Context{Principal: &models.Principal{ID: "staff-1", Role: models.RoleStaff}}
	super := &session.Context{Principal: &models.Principal{ID: "root-1", Role: models.RoleSuperAdmin}}

	tests := []struct {
		name  string
		sess  *session.Context
		event events.Event
		want  bool
	}{
		{"own notification", staff, events.Event{Topic: events.TopicNotification, Key: "staff-1"}, true},
		{"other notification", staff, events.Event{Topic: events.TopicNotification, Key: "root-1"}, false},
		{"other session event", super, events.Event{Topic: events.TopicSession, Key: "staff-1"}, false},
		{"principal for staff", staff, events.Event{Topic: events.TopicPrincipal}, false},
		{"principal for super admin", super, events.Event{Topic: events.TopicPrincipal}, true},
		{"beneficiary change", staff, events.Event{Topic: events.TopicBeneficiary}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visible(tt.sess, tt.event); got != tt.want {
				t.Errorf("visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTopics(t *testing.T) {
	got := parseTopics(" beneficiary, ,schedule ")
	if len(got) != 2 || got[0] != events.TopicBeneficiary || got[1] != events.TopicSchedule {
		t.Errorf("unexpected topics %v", got)
	}
	if parseTopics("") != nil {
		t.Error("expected no topics for empty input")
	}
}

func TestEventStream(t *testing.T) {
	env := freshEnv()
	_, token := seedTestUser(env, models.RoleAdmin)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events?topics=beneficiary&token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.bus.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	env.bus.Publish(events.Event{Topic: events.TopicCenter, Type: "center.created"})
	env.bus.Publish(events.Event{Topic: events.TopicBeneficiary, Type: "beneficiary.approved", Key: "1234567890123"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got events.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Type != "beneficiary.approved" || got.Key != "1234567890123" {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestEventStreamRequiresToken(t *testing.T) {
	env := freshEnv()
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail without a token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("expected 401 response, got %v", resp)
	}
}
