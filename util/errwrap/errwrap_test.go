package errwrap

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapfErr1(t *testing.T) {
	if err := Wrapf(nil, "whatever: %d", 42); err != nil {
		t.Errorf("expected nil result")
	}
}

func TestAppendErr1(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Errorf("expected nil result")
	}
}

func TestAppendErr2(t *testing.T) {
	reterr := fmt.Errorf("reterr")
	if err := Append(reterr, nil); err != reterr {
		t.Errorf("expected reterr")
	}
}

func TestAppendErr3(t *testing.T) {
	err := fmt.Errorf("err")
	if reterr := Append(nil, err); reterr != err {
		t.Errorf("expected err")
	}
}

func TestString1(t *testing.T) {
	var err error
	if String(err) != "" {
		t.Errorf("expected empty result")
	}

	msg := "this is an error"
	if err := fmt.Errorf(msg); String(err) != msg {
		t.Errorf("expected different result")
	}
}

func TestTimeoutNoCleanupErr(t *testing.T) {
	deadline := errors.New("deadline exceeded")
	if got := Timeout(deadline, nil); got != deadline {
		t.Errorf("expected the deadline error unchanged, got %v", got)
	}
}

func TestTimeoutCombinesBoth(t *testing.T) {
	deadline := errors.New("deadline exceeded")
	killErr := errors.New("no such process")
	err := Timeout(deadline, killErr)
	if err == nil {
		t.Fatal("expected a combined error")
	}
	msg := err.Error()
	if !errors.Is(err, deadline) {
		t.Errorf("expected the deadline error in the chain: %v", msg)
	}
}
