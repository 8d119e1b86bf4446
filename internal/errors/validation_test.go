package errors_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) fieldErrors(err error) map[string][]string {
	s.Require().NotNil(err)
	fields, ok := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Require().True(ok)
	return fields
}

func (s *ValidationTestSuite) TestValidationError() {
	ve := errors.NewValidationError()
	ve.AddFieldError("HumanName", "is required")
	ve.AddFieldErrorf("Roster", "must have at most %d members", 6)

	s.True(ve.HasErrors())
	s.Contains(ve.Error(), "HumanName: is required")
	s.Contains(ve.Error(), "Roster: must have at most 6 members")

	err := ve.ToError()
	s.Equal(errors.CodeInvalidArgument, err.Code)
	s.NotNil(err.Meta["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("Generator").
		InvalidField("Scene", "unknown scene")

	err := vb.Build()
	s.True(errors.IsInvalidArgument(err))
	s.Contains(s.fieldErrors(err)["Scene"][0], "unknown scene")
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	s.Nil(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "Aria", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("HumanName", tc.value, vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidationErrorKeepsReportOrder() {
	ve := errors.NewValidationError()
	ve.AddFieldError("Narrator", "is required")
	ve.AddFieldError("Engine", "is required")
	ve.AddFieldError("Narrator", "must be scripted or openai")

	s.Equal([]string{"Narrator", "Engine"}, ve.FieldNames())
	s.Equal("validation failed: Narrator: is required, must be scripted or openai; Engine: is required", ve.Error())
}

func (s *ValidationTestSuite) TestValidateNonNegative() {
	vb := errors.NewValidationBuilder()
	errors.ValidateNonNegative("Workers", -1, vb)
	errors.ValidateNonNegative("Delay", -time.Second, vb)
	errors.ValidateNonNegative("Backlog", 0, vb)
	errors.ValidateNonNegative("MaxTokens", int64(160), vb)

	fields := s.fieldErrors(vb.Build())
	s.Equal([]string{"must not be negative"}, fields["Workers"])
	s.Contains(fields, "Delay")
	s.NotContains(fields, "Backlog")
	s.NotContains(fields, "MaxTokens")
}

func (s *ValidationTestSuite) TestValidateEnum() {
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("Kind", "robot", []string{"human", "autonomous"}, vb)
	errors.ValidateEnum("Other", "human", []string{"human", "autonomous"}, vb)

	fields := s.fieldErrors(vb.Build())
	s.Contains(fields["Kind"][0], "must be one of: human, autonomous")
	s.NotContains(fields, "Other")
}

func (s *ValidationTestSuite) TestValidatePositiveDuration() {
	vb := errors.NewValidationBuilder()
	errors.ValidatePositiveDuration("CallTimeout", 0, vb)
	errors.ValidatePositiveDuration("ClipTTL", time.Minute, vb)

	fields := s.fieldErrors(vb.Build())
	s.Contains(fields, "CallTimeout")
	s.NotContains(fields, "ClipTTL")
}

func (s *ValidationTestSuite) TestValidateUnitInterval() {
	testCases := []struct {
		name      string
		value     float64
		shouldErr bool
	}{
		{"silent", 0, false},
		{"full", 1, false},
		{"half", 0.5, false},
		{"negative", -0.1, true},
		{"too loud", 1.5, true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateUnitInterval("Volume", tc.value, vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}
