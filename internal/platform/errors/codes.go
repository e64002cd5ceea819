// Package errors provides structured error handling for the exam engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionNotFound              Code = "SESSION_NOT_FOUND"
	CodeSessionAlreadyCompleted      Code = "SESSION_ALREADY_COMPLETED"
	CodeSessionInsufficientQuestions Code = "SESSION_INSUFFICIENT_QUESTIONS"
	CodeSessionInvalidPayloadShape   Code = "SESSION_INVALID_PAYLOAD_SHAPE"
	CodeSessionEmptyID               Code = "SESSION_EMPTY_ID"
	CodeSessionInvalidCount          Code = "SESSION_INVALID_QUESTION_COUNT"

	// Question errors
	CodeQuestionNotFound            Code = "QUESTION_NOT_FOUND"
	CodeQuestionEmptyText           Code = "QUESTION_EMPTY_TEXT"
	CodeQuestionEmptyCertification  Code = "QUESTION_EMPTY_CERTIFICATION"
	CodeQuestionInvalidKind         Code = "QUESTION_INVALID_KIND"
	CodeQuestionInvalidDifficulty   Code = "QUESTION_INVALID_DIFFICULTY"
	CodeQuestionNoOptions           Code = "QUESTION_NO_OPTIONS"
	CodeQuestionNoCorrectOptions    Code = "QUESTION_NO_CORRECT_OPTIONS"
	CodeQuestionCorrectOutOfRange   Code = "QUESTION_CORRECT_INDEX_OUT_OF_RANGE"
	CodeQuestionSingleChoiceCorrect Code = "QUESTION_SINGLE_CHOICE_CORRECT_COUNT"
	CodeQuestionInvalidAnswerKey    Code = "QUESTION_INVALID_ANSWER_KEY"

	// Filter errors
	CodeFilterInvalid Code = "FILTER_INVALID"

	// Storage errors
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// GRPCCode maps the domain code to its transport status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeSessionNotFound, CodeQuestionNotFound:
		return codes.NotFound
	case CodeSessionAlreadyCompleted:
		return codes.FailedPrecondition
	case CodeSessionInsufficientQuestions:
		return codes.FailedPrecondition
	case CodeSessionInvalidPayloadShape:
		return codes.DataLoss
	case CodeSessionEmptyID,
		CodeSessionInvalidCount,
		CodeQuestionEmptyText,
		CodeQuestionEmptyCertification,
		CodeQuestionInvalidKind,
		CodeQuestionInvalidDifficulty,
		CodeQuestionNoOptions,
		CodeQuestionNoCorrectOptions,
		CodeQuestionCorrectOutOfRange,
		CodeQuestionSingleChoiceCorrect,
		CodeQuestionInvalidAnswerKey,
		CodeFilterInvalid:
		return codes.InvalidArgument
	case CodeStorageFailure:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
