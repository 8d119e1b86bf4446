package errors_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "no active session",
			code:     errors.CodeNoActiveSession,
			message:  "session not found",
			expected: "NO_ACTIVE_SESSION: session not found",
		},
		{
			name:     "invalid notation",
			code:     errors.CodeInvalidNotation,
			message:  "bad dice",
			expected: "INVALID_NOTATION: bad dice",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotYourTurn("wait your turn").
		WithMeta("session_id", "sess_1").
		WithMeta("member_id", "human")

	s.Equal("sess_1", err.Meta["session_id"])
	s.Equal("human", err.Meta["member_id"])

	err2 := errors.Internal("server error").
		WithMetaMap(map[string]any{
			"request_id": "abc",
			"trace_id":   "xyz",
		})

	s.Equal("abc", err2.Meta["request_id"])
	s.Equal("xyz", err2.Meta["trace_id"])
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("redis connection refused")
	wrapped := errors.Wrap(baseErr, "failed to store clip")

	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal("failed to store clip", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	baseErr := errors.NoActiveSession("session ended")
	wrapped := errors.Wrap(baseErr, "cannot submit action")

	s.Equal(errors.CodeNoActiveSession, wrapped.Code)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapContextErrors() {
	s.Equal(errors.CodeDeadlineExceeded, errors.Wrap(context.DeadlineExceeded, "narrate").Code)
	s.Equal(errors.CodeCanceled, errors.Wrap(fmt.Errorf("call: %w", context.Canceled), "narrate").Code)
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestCollaboratorFailure() {
	s.Run("timeout is flagged", func() {
		err := errors.CollaboratorFailure(fmt.Errorf("narrate: %w", context.DeadlineExceeded), "narrative")

		s.True(errors.IsCollaboratorFailure(err))
		s.Equal("narrative", err.Meta["collaborator"])
		s.Equal(true, err.Meta["timed_out"])
	})

	s.Run("nil cause still produces an error", func() {
		err := errors.CollaboratorFailure(nil, "voice")

		s.True(errors.IsCollaboratorFailure(err))
		s.Equal(false, err.Meta["timed_out"])
	})
}

func (s *ErrorsTestSuite) TestPlaybackFailed() {
	err := errors.PlaybackFailed("thorgar", fmt.Errorf("decoder crashed"))

	s.True(errors.IsPlaybackFailed(err))
	s.Equal("thorgar", errors.GetMeta(err)["speaker_id"])
	s.Contains(err.Error(), "decoder crashed")
}

func (s *ErrorsTestSuite) TestConstructorFunctions() {
	testCases := []struct {
		name        string
		constructor func() *errors.Error
		code        errors.Code
	}{
		{"NotFound", func() *errors.Error { return errors.NotFound("test") }, errors.CodeNotFound},
		{"InvalidArgument", func() *errors.Error { return errors.InvalidArgument("test") }, errors.CodeInvalidArgument},
		{"AlreadyExists", func() *errors.Error { return errors.AlreadyExists("test") }, errors.CodeAlreadyExists},
		{"Internal", func() *errors.Error { return errors.Internal("test") }, errors.CodeInternal},
		{"Unavailable", func() *errors.Error { return errors.Unavailable("test") }, errors.CodeUnavailable},
		{"InvalidNotation", func() *errors.Error { return errors.InvalidNotation("test") }, errors.CodeInvalidNotation},
		{"NotYourTurn", func() *errors.Error { return errors.NotYourTurn("test") }, errors.CodeNotYourTurn},
		{"NoActiveSession", func() *errors.Error { return errors.NoActiveSession("test") }, errors.CodeNoActiveSession},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.constructor()
			s.Equal(tc.code, err.Code)
			s.Equal("test", err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorIs() {
	err1 := errors.NotYourTurn("a")
	err2 := errors.NotYourTurn("b")
	err3 := errors.NoActiveSession("a")

	s.True(err1.Is(err2))
	s.False(err1.Is(err3))
}

func (s *ErrorsTestSuite) TestGetCode() {
	err := errors.InvalidNotation("test")
	wrapped := errors.Wrap(err, "wrapped")

	s.Equal(errors.CodeInvalidNotation, errors.GetCode(err))
	s.Equal(errors.CodeInvalidNotation, errors.GetCode(wrapped))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	err := errors.NotFound("user friendly message")
	wrapped := errors.Wrap(err, "wrapped message")
	stdErr := fmt.Errorf("standard error")

	s.Equal("user friendly message", errors.GetMessage(err))
	s.Equal("wrapped message", errors.GetMessage(wrapped))
	s.Equal("standard error", errors.GetMessage(stdErr))
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, 200},
		{errors.CodeNotFound, 404},
		{errors.CodeInvalidArgument, 400},
		{errors.CodeInvalidNotation, 400},
		{errors.CodeNotYourTurn, 409},
		{errors.CodeNoActiveSession, 404},
		{errors.CodeCollaboratorFailure, 503},
		{errors.CodePlaybackFailed, 500},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.HTTPStatus())
		})
	}
}

func (s *ErrorsTestSuite) TestGRPCCodeMapping() {
	testCases := []struct {
		code     errors.Code
		expected codes.Code
	}{
		{errors.CodeNotFound, codes.NotFound},
		{errors.CodeInvalidArgument, codes.InvalidArgument},
		{errors.CodeInvalidNotation, codes.InvalidArgument},
		{errors.CodeNotYourTurn, codes.FailedPrecondition},
		{errors.CodeNoActiveSession, codes.NotFound},
		{errors.CodeCollaboratorFailure, codes.Unavailable},
		{errors.CodePlaybackFailed, codes.Internal},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.GRPCCode())
		})
	}
}

func (s *ErrorsTestSuite) TestGRPCRoundTripRestoresDomainCode() {
	err := errors.NotYourTurn("it is Thorgar's turn").
		WithMeta("current_member", "thorgar")

	grpcErr := errors.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Equal(codes.FailedPrecondition, st.Code())
	s.Equal("it is Thorgar's turn", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.True(errors.IsNotYourTurn(back))
	s.Equal("thorgar", errors.GetMeta(back)["current_member"])
}

func (s *ErrorsTestSuite) TestFromPlainGRPCError() {
	err := errors.FromGRPCError(status.Error(codes.InvalidArgument, "invalid input"))

	s.Equal(errors.CodeInvalidArgument, errors.GetCode(err))
	s.Equal("invalid input", errors.GetMessage(err))
}

func (s *ErrorsTestSuite) TestValidationMetaSurvivesGRPC() {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("HumanName")

	grpcErr := errors.ToGRPCError(vb.Build())
	back := errors.FromGRPCError(grpcErr)

	s.True(errors.IsInvalidArgument(back))
	s.Contains(errors.GetMeta(back), "validation_errors")
}
