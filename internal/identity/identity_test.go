package identity

import (
	"errors"
	"testing"
	"time"
)

func TestResolve_RoundTrip(t *testing.T) {
	resolver, err := NewResolver("test-secret")
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	token, err := resolver.IssueToken("user-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	userId, err := resolver.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if userId != "user-123" {
		t.Errorf("Expected user-123, got %s", userId)
	}
}

func TestResolve_Expired(t *testing.T) {
	resolver, err := NewResolver("test-secret")
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	token, err := resolver.IssueToken("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	_, err = resolver.Resolve(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestResolve_WrongSecret(t *testing.T) {
	issuer, err := NewResolver("secret-a")
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	verifier, err := NewResolver("secret-b")
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	token, err := issuer.IssueToken("user-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	_, err = verifier.Resolve(token)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolve_Garbage(t *testing.T) {
	resolver, err := NewResolver("test-secret")
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	_, err = resolver.Resolve("not-a-token")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestNewResolver_EmptySecret(t *testing.T) {
	if _, err := NewResolver(""); err == nil {
		t.Errorf("Expected error for empty secret")
	}
}
