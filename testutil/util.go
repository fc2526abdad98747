/*
Copyright 2026 The Skaffold Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package testutil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type BadReader struct{}

func (BadReader) Read([]byte) (int, error) { return 0, fmt.Errorf("bad read") }

type BadWriter struct{}

func (BadWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("bad write") }

// T wraps testing.T with the Check* helpers used across the tests.
type T struct {
	*testing.T
}

// Run runs f as a subtest named description.
func Run(t *testing.T, description string, f func(t *T)) {
	t.Helper()

	if description == "" {
		f(&T{T: t})
		return
	}

	t.Run(description, func(tt *testing.T) {
		tt.Helper()
		f(&T{T: tt})
	})
}

// ForTester is implemented by fakes that need the running test.
type ForTester interface {
	ForTest(t *testing.T)
}

// Override sets the value pointed to by dest to tmp and restores it
// when the test ends.
func (t *T) Override(dest, tmp interface{}) {
	t.Helper()

	if ft, ok := tmp.(ForTester); ok {
		ft.ForTest(t.T)
	}

	if err := override(t.T, dest, tmp); err != nil {
		t.Fatalf("temporary override value is invalid: %v", err)
	}
}

func override(t *testing.T, dest, tmp interface{}) error {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("panic while overriding: %v", r)
		}
	}()

	dValue := reflect.ValueOf(dest)
	if dValue.Kind() != reflect.Ptr {
		return errors.New("not a pointer")
	}
	dValue = dValue.Elem()

	var tmpV reflect.Value
	if tmp == nil {
		tmpV = reflect.Zero(dValue.Type())
	} else {
		tmpV = reflect.ValueOf(tmp)
	}

	curValue := reflect.New(dValue.Type()).Elem()
	curValue.Set(dValue)
	dValue.Set(tmpV)

	t.Cleanup(func() {
		dValue.Set(curValue)
	})
	return nil
}

func (t *T) NewTempDir() *TempDir {
	return NewTempDir(t.T)
}

func (t *T) CheckDeepEqual(expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	CheckDeepEqual(t.T, expected, actual, opts...)
}

func (t *T) CheckErrorAndDeepEqual(shouldErr bool, err error, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	CheckErrorAndDeepEqual(t.T, shouldErr, err, expected, actual, opts...)
}

func (t *T) CheckError(shouldErr bool, err error) {
	t.Helper()
	CheckError(t.T, shouldErr, err)
}

func (t *T) CheckNoError(err error) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func (t *T) CheckErrorContains(message string, err error) {
	t.Helper()
	CheckErrorContains(t.T, message, err)
}

func (t *T) CheckContains(expected, actual string) {
	t.Helper()
	if !strings.Contains(actual, expected) {
		t.Errorf("expected output %q to contain %q", actual, expected)
	}
}

func (t *T) CheckNotContains(unexpected, actual string) {
	t.Helper()
	if strings.Contains(actual, unexpected) {
		t.Errorf("expected output %q not to contain %q", actual, unexpected)
	}
}

func (t *T) CheckTrue(actual bool) {
	t.Helper()
	if !actual {
		t.Error("expected true, got false")
	}
}

func (t *T) CheckFalse(actual bool) {
	t.Helper()
	if actual {
		t.Error("expected false, got true")
	}
}

func (t *T) CheckNil(actual interface{}) {
	t.Helper()
	if !isNil(actual) {
		t.Errorf("expected nil, got %+v", actual)
	}
}

func (t *T) CheckNotNil(actual interface{}) {
	t.Helper()
	if isNil(actual) {
		t.Error("expected a value, got nil")
	}
}

func (t *T) CheckEmpty(actual interface{}) {
	t.Helper()
	v := reflect.ValueOf(actual)
	if actual != nil && v.Len() != 0 {
		t.Errorf("expected empty, got %+v", actual)
	}
}

func CheckDeepEqual(t *testing.T, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(actual, expected, opts...); diff != "" {
		t.Errorf("%T differ (-got, +want): %s", expected, diff)
	}
}

func CheckErrorAndDeepEqual(t *testing.T, shouldErr bool, err error, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Error(err)
		return
	}
	if diff := cmp.Diff(actual, expected, opts...); diff != "" {
		t.Errorf("%T differ (-got, +want): %s", expected, diff)
	}
}

func CheckError(t *testing.T, shouldErr bool, err error) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Error(err)
	}
}

func CheckErrorContains(t *testing.T, message string, err error) {
	t.Helper()
	if err == nil {
		t.Errorf("expected error containing %q, but returned none", message)
		return
	}
	if !strings.Contains(err.Error(), message) {
		t.Errorf("expected error message to contain %q, got %q", message, err.Error())
	}
}

func checkErr(shouldErr bool, err error) error {
	if err == nil && shouldErr {
		return errors.New("expected error, but returned none")
	}
	if err != nil && !shouldErr {
		return fmt.Errorf("unexpected error: %s", err)
	}
	return nil
}

func isNil(actual interface{}) bool {
	if actual == nil {
		return true
	}
	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
