package models

// SecurityQuestion is one entry from the shared question bank.
type SecurityQuestion struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
}

// SecurityQuestionRecord links a user to a bank question plus the salted hash
// of their answer. A user needs exactly RequiredSecurityQuestions records to
// enable the security-question challenge, and may not answer the same
// question twice.
type SecurityQuestionRecord struct {
	Username   string `db:"username"`
	QuestionID int64  `db:"question_id"`
	AnswerHash string `db:"answer_hash"`
	Salt       string `db:"salt"`
}

// RequiredSecurityQuestions is how many configured answers a user needs
// before the security-question challenge becomes eligible.
const RequiredSecurityQuestions = 3
