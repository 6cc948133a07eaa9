package models

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserRole{},
		&Session{},
		&Case{},
		&CaseComplainant{},
		&CaseWitness{},
		&Complaint{},
		&ComplaintReview{},
		&Suspect{},
		&GuiltScore{},
		&Interrogation{},
		&CaptainDecision{},
		&Trial{},
		&Evidence{},
		&DetectiveBoard{},
		&BoardConnection{},
		&RewardSubmission{},
		&Reward{},
		&BailFine{},
		&PaymentTransaction{},
		&Notification{},
		&AuditLog{},
	}
}
