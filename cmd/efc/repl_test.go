package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindThenDumpReportsTheBoundType(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.eval(":bind x Int", &out)
	out.Reset()
	r.eval(":dump x", &out)
	assert.Contains(t, out.String(), "x : Int")
}

func TestSnapshotRestoreUndoesALaterBinding(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.eval(":bind x Int", &out)
	r.eval(":snapshot before", &out)
	r.eval(":bind y Bool", &out)
	out.Reset()
	r.eval(":dump y", &out)
	assert.Contains(t, out.String(), "y : Bool")

	r.eval(":restore before", &out)
	out.Reset()
	r.eval(":dump y", &out)
	assert.Contains(t, out.String(), "no binding")
}

func TestUnifyReportsMatchingBuiltinsAsUnifying(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.eval(":unify Int Int", &out)
	assert.Contains(t, out.String(), "unifies")
}

func TestUnifyReportsMismatchedBuiltinsAsFailing(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.eval(":unify Int Bool", &out)
	assert.Contains(t, out.String(), "does not unify")
}

func TestDumpOfAnUnknownNameIsAnError(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.eval(":dump ghost", &out)
	assert.Contains(t, out.String(), "error")
}
