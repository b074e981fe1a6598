package results

import (
	"errors"
	"testing"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](42)
	if !ok.IsSuccess() || ok.IsFailure() || *ok.Success != 42 {
		t.Fatalf("unexpected success result: %+v", ok)
	}

	boom := errors.New("boom")
	failed := FailureResult[int, error](boom)
	if failed.IsSuccess() || !failed.IsFailure() || *failed.Failure != boom {
		t.Fatalf("unexpected failure result: %+v", failed)
	}

	var zero OperationResult[int, error]
	if zero.IsSuccess() || zero.IsFailure() {
		t.Fatalf("zero result must be neither success nor failure")
	}
}
