package widgettoken

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Issue("bot-1", "thread-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.BotID != "bot-1" || claims.ThreadID != "thread-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewManager("secret-a", time.Hour)
	b, _ := NewManager("secret-b", time.Hour)
	token, err := a.Issue("bot-1", "thread-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	m.ttl = -2 * time.Minute
	m.leeway = 0
	token, err := m.Issue("bot-1", "thread-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestIssueRequiresIDs(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	if _, err := m.Issue("", "thread-1"); err == nil {
		t.Fatalf("expected error for empty bot id")
	}
	if _, err := m.Issue("bot-1", "  "); err == nil {
		t.Fatalf("expected error for empty thread id")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
