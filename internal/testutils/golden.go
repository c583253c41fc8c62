package testutils

import (
	"bytes"
	"encoding/json"
	"os"
	"path"

	"github.com/pmezard/go-difflib/difflib"
)

// CheckGoldenJSON compares actual with the JSON document stored at expectFilePath.
// Both sides are canonicalized first, so key order and indentation don't matter.
// A missing golden file is created from actual.
func CheckGoldenJSON(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	actual = CanonicalJSON(t, actual)

	expect, err := os.ReadFile(expectFilePath)
	if os.IsNotExist(err) {
		err = os.MkdirAll(path.Dir(expectFilePath), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(expectFilePath, actual, 0444)
		if err != nil {
			t.Fatal(err)
		}
		return
	} else if err != nil {
		t.Error(err)
		return
	}

	checkDiff(t, CanonicalJSON(t, expect), actual)
}

// AssertJSON reports a unified diff when expect and actual are different JSON values.
func AssertJSON(t TestingT, expect, actual []byte) {
	t.Helper()

	checkDiff(t, CanonicalJSON(t, expect), CanonicalJSON(t, actual))
}

func CanonicalJSON(t TestingT, b []byte) []byte {
	t.Helper()

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	err := dec.Decode(&v)
	if err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, string(b))
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	return append(out, '\n')
}

func checkDiff(t TestingT, expect, actual []byte) {
	t.Helper()

	if bytes.Equal(expect, actual) {
		return
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expect)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  5,
	}
	d, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		t.Fatal(err)
	}
	t.Error(d)
}
