package logger_test

import (
	"strings"
	"testing"

	"github.com/zeramorphic/armul/logger"
	"github.com/zeramorphic/armul/test"
)

func TestLogf(t *testing.T) {
	logger.Clear()
	tw := &test.CompareWriter{}

	logger.Logf(logger.Allow, "debugger", "loaded program, %d words, %d symbols", 12, 3)
	logger.Write(tw)
	test.Equate(t, tw.Compare("debugger: loaded program, 12 words, 3 symbols\n"), true)

	logger.Clear()
}

func TestWriteRecentOnlyReturnsEntriesSinceLastCall(t *testing.T) {
	logger.Clear()
	tw := &test.CompareWriter{}

	logger.Log(logger.Allow, "cpu", "first")
	logger.WriteRecent(tw)
	test.Equate(t, tw.Compare("cpu: first\n"), true)

	tw.Clear()
	logger.WriteRecent(tw)
	test.Equate(t, tw.Compare(""), true)

	logger.Log(logger.Allow, "cpu", "second")
	tw.Clear()
	logger.WriteRecent(tw)
	test.Equate(t, tw.Compare("cpu: second\n"), true)

	logger.Clear()
}

func TestSetEchoMirrorsFutureEntries(t *testing.T) {
	logger.Clear()
	var echoed strings.Builder

	logger.SetEcho(&echoed, false)
	logger.Log(logger.Allow, "cpu", "echoed entry")
	test.Equate(t, echoed.String(), "cpu: echoed entry\n")

	logger.SetEcho(nil, false)
	logger.Clear()
}

func TestBorrowLogSeesCurrentEntries(t *testing.T) {
	logger.Clear()
	logger.Log(logger.Allow, "debugger", "breakpoint hit")

	var tag string
	logger.BorrowLog(func(entries []logger.Entry) {
		test.Equate(t, len(entries), 1)
		tag = entries[0].String()
	})
	test.Equate(t, strings.HasPrefix(tag, "debugger:"), true)

	logger.Clear()
}

// permissionFunc adapts a bool into a logger.Permission for tests that need
// to exercise the conditional gate rather than the always-allow path.
type permissionFunc bool

func (p permissionFunc) AllowLogging() bool { return bool(p) }

func TestLogRespectsPermission(t *testing.T) {
	logger.Clear()
	tw := &test.CompareWriter{}

	logger.Log(permissionFunc(false), "cpu", "should not appear")
	logger.Write(tw)
	test.Equate(t, tw.Compare(""), true)

	logger.Log(permissionFunc(true), "cpu", "should appear")
	logger.Write(tw)
	test.Equate(t, tw.Compare("cpu: should appear\n"), true)

	logger.Clear()
}
