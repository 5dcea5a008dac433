package models

import "testing"

func TestCandidateStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from CandidateStatus
		to   CandidateStatus
		want bool
	}{
		{CandidatePending, CandidateApproved, true},
		{CandidatePending, CandidateRejected, true},
		{CandidatePending, CandidatePending, false},
		{CandidateApproved, CandidateRejected, false},
		{CandidateApproved, CandidatePending, false},
		{CandidateRejected, CandidateApproved, false},
		{CandidatePending, CandidateStatus("archived"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidateStatus_IsValid(t *testing.T) {
	for _, s := range []CandidateStatus{CandidatePending, CandidateApproved, CandidateRejected} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if CandidateStatus("unknown").IsValid() {
		t.Error("unknown should be invalid")
	}
}
