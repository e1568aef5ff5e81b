// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package tty

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var _ = fmt.Print

type fake_mode struct {
	Raw  bool
	Name string
}

type fake_controller struct {
	current                 fake_mode
	calls                   []string
	fail_get, fail_make_raw bool
	fail_restore            bool
}

func (self *fake_controller) Current() (fake_mode, error) {
	self.calls = append(self.calls, "current")
	if self.fail_get {
		return fake_mode{}, errors.New("get failed")
	}
	return self.current, nil
}

func (self *fake_controller) MakeRaw(original fake_mode) error {
	self.calls = append(self.calls, "make_raw")
	if self.fail_make_raw {
		return errors.New("make raw failed")
	}
	self.current = fake_mode{Raw: true, Name: original.Name + "+raw"}
	return nil
}

func (self *fake_controller) Restore(saved fake_mode) error {
	self.calls = append(self.calls, "restore")
	if self.fail_restore {
		return errors.New("restore failed")
	}
	self.current = saved
	return nil
}

func TestRawModeIsIdempotent(t *testing.T) {
	c := &fake_controller{current: fake_mode{Name: "cooked"}}
	rm := NewRawMode[fake_mode](c)
	if rm.IsEnabled() {
		t.Fatalf("New raw mode state is enabled")
	}
	if err := rm.Disable(); err != nil {
		t.Fatalf("Disable without enable failed: %s", err)
	}
	if len(c.calls) != 0 {
		t.Fatalf("Disable without enable touched the terminal: %v", c.calls)
	}

	if err := rm.Enable(); err != nil {
		t.Fatal(err)
	}
	first, ok := rm.Saved()
	if !ok {
		t.Fatalf("Enable did not save the original mode")
	}
	if err := rm.Enable(); err != nil {
		t.Fatal(err)
	}
	second, _ := rm.Saved()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Second enable changed the saved mode:\n%s", diff)
	}
	if diff := cmp.Diff(fake_mode{Name: "cooked"}, second); diff != "" {
		t.Fatalf("Saved mode is not the original:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"current", "make_raw"}, c.calls); diff != "" {
		t.Fatalf("Second enable touched the terminal:\n%s", diff)
	}

	if err := rm.Disable(); err != nil {
		t.Fatal(err)
	}
	if rm.IsEnabled() {
		t.Fatalf("Raw mode still enabled after disable")
	}
	if diff := cmp.Diff(fake_mode{Name: "cooked"}, c.current); diff != "" {
		t.Fatalf("Disable did not restore the original mode:\n%s", diff)
	}
	if err := rm.Disable(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"current", "make_raw", "restore"}, c.calls); diff != "" {
		t.Fatalf("Unexpected terminal operations:\n%s", diff)
	}
}

func TestRawModeFailures(t *testing.T) {
	c := &fake_controller{current: fake_mode{Name: "cooked"}, fail_make_raw: true}
	rm := NewRawMode[fake_mode](c)
	if err := rm.Enable(); err == nil {
		t.Fatalf("Enable did not report failure to apply raw mode")
	}
	if rm.IsEnabled() {
		t.Fatalf("Failed enable left state raw")
	}
	c.fail_make_raw = false
	c.fail_get = true
	if err := rm.Enable(); err == nil {
		t.Fatalf("Enable did not report failure to read mode")
	}
	if rm.IsEnabled() {
		t.Fatalf("Failed enable left state raw")
	}

	c.fail_get = false
	if err := rm.Enable(); err != nil {
		t.Fatal(err)
	}
	c.fail_restore = true
	if err := rm.Disable(); err == nil {
		t.Fatalf("Disable did not report failure to restore")
	}
	if saved, ok := rm.Saved(); !ok || saved.Name != "cooked" {
		t.Fatalf("Failed restore lost the saved mode: %#v %v", saved, ok)
	}
	c.fail_restore = false
	if err := rm.Disable(); err != nil {
		t.Fatalf("Retrying disable failed: %s", err)
	}
	if diff := cmp.Diff(fake_mode{Name: "cooked"}, c.current); diff != "" {
		t.Fatalf("Retried disable did not restore the original mode:\n%s", diff)
	}
}

func TestWithRawMode(t *testing.T) {
	c := &fake_controller{current: fake_mode{Name: "cooked"}}
	rm := NewRawMode[fake_mode](c)
	query_err := errors.New("query failed")

	was_raw := false
	err := WithRawMode(rm, func() error {
		was_raw = rm.IsEnabled()
		return query_err
	})
	if !errors.Is(err, query_err) {
		t.Fatalf("Callback error not propagated: %v", err)
	}
	if !was_raw {
		t.Fatalf("Callback did not run in raw mode")
	}
	if rm.IsEnabled() {
		t.Fatalf("Raw mode not left after a failed callback")
	}

	// already raw: left alone
	if err = rm.Enable(); err != nil {
		t.Fatal(err)
	}
	c.calls = nil
	if err = WithRawMode(rm, func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !rm.IsEnabled() || len(c.calls) != 0 {
		t.Fatalf("Raw mode owned by the caller was changed: %v", c.calls)
	}
	_ = rm.Disable()

	// restore failure is reported when the callback succeeds
	c.fail_restore = true
	err = WithRawMode(rm, func() error { return nil })
	if err == nil || err.Error() != "restore failed" {
		t.Fatalf("Restore failure not reported: %v", err)
	}
}

func TestEnterReportsOwnership(t *testing.T) {
	c := &fake_controller{current: fake_mode{Name: "cooked"}}
	rm := NewRawMode[fake_mode](c)
	if entered, err := rm.Enter(); !entered || err != nil {
		t.Fatalf("First Enter() did not enter raw mode: %v %v", entered, err)
	}
	if entered, err := rm.Enter(); entered || err != nil {
		t.Fatalf("Second Enter() claimed to enter raw mode: %v %v", entered, err)
	}
	c.fail_make_raw = true
	_ = rm.Disable()
	if entered, err := rm.Enter(); entered || err == nil {
		t.Fatalf("Failed Enter() claimed to enter raw mode: %v %v", entered, err)
	}
	c.fail_make_raw = false

	// a scope that finds raw mode already on never turns it off, even when
	// raw mode was turned on by someone else after the scope started
	c.calls = nil
	err := WithRawMode(rm, func() error {
		if !rm.IsEnabled() {
			t.Fatalf("Scope did not enable raw mode")
		}
		if entered, _ := rm.Enter(); entered {
			t.Fatalf("Enter() inside a scope claimed to enter raw mode")
		}
		return WithRawMode(rm, func() error { return nil })
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"current", "make_raw", "restore"}, c.calls); diff != "" {
		t.Fatalf("Nested scopes changed the mode more than once:\n%s", diff)
	}
}

func TestRawModeConcurrentUse(t *testing.T) {
	c := &fake_controller{current: fake_mode{Name: "cooked"}}
	rm := NewRawMode[fake_mode](c)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				switch i % 3 {
				case 0:
					_ = rm.Enable()
					_ = rm.Disable()
				case 1:
					_ = WithRawMode(rm, func() error { return nil })
				default:
					_ = rm.Enable()
					_ = rm.IsEnabled()
				}
			}
		}()
	}
	wg.Wait()
	if err := rm.Disable(); err != nil {
		t.Fatal(err)
	}
	// the terminal was never changed from raw to raw, nor restored while not raw
	expected := []string{"current", "make_raw", "restore"}
	for i, call := range c.calls {
		if call != expected[i%3] {
			t.Fatalf("Operation %d is %s, expected %s: %v", i, call, expected[i%3], c.calls)
		}
	}
	if len(c.calls)%3 != 0 {
		t.Fatalf("Raw mode left on: %v", c.calls)
	}
	if diff := cmp.Diff(fake_mode{Name: "cooked"}, c.current); diff != "" {
		t.Fatalf("Original mode lost:\n%s", diff)
	}
}
