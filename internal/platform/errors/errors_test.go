package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeSessionNotFound, "session abc not found")
	target := New(CodeSessionNotFound, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeSessionAlreadyCompleted, "session abc completed")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStorageFailure, "persist session", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable, got %v", err)
	}
	if err.Error() != "persist session" {
		t.Fatalf("expected internal message, got %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	err := New(CodeSessionInsufficientQuestions, "pool too small")
	wrapped := fmt.Errorf("start session: %w", err)

	if got := CodeOf(wrapped); got != CodeSessionInsufficientQuestions {
		t.Fatalf("expected code through chain, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code for plain error, got %s", got)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("expected unknown code for nil, got %s", got)
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	cases := []struct {
		code Code
		want codes.Code
	}{
		{CodeSessionNotFound, codes.NotFound},
		{CodeQuestionNotFound, codes.NotFound},
		{CodeSessionAlreadyCompleted, codes.FailedPrecondition},
		{CodeSessionInsufficientQuestions, codes.FailedPrecondition},
		{CodeSessionInvalidPayloadShape, codes.DataLoss},
		{CodeQuestionInvalidKind, codes.InvalidArgument},
		{CodeFilterInvalid, codes.InvalidArgument},
		{CodeStorageFailure, codes.Internal},
		{CodeUnknown, codes.Unknown},
	}
	for _, tc := range cases {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.code, tc.want, got)
		}
	}
}

func TestToGRPCStatusCarriesErrorInfo(t *testing.T) {
	err := WithMetadata(CodeSessionInsufficientQuestions, "pool too small", map[string]string{
		"certification": "CLF-C02",
		"requested":     "65",
	})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a grpc status error")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %s", st.Code())
	}

	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.Reason != string(CodeSessionInsufficientQuestions) {
		t.Fatalf("expected reason %s, got %s", CodeSessionInsufficientQuestions, info.Reason)
	}
	if info.Domain != Domain {
		t.Fatalf("expected domain %s, got %s", Domain, info.Domain)
	}
	if info.Metadata["certification"] != "CLF-C02" {
		t.Fatalf("expected certification metadata, got %v", info.Metadata)
	}
}
