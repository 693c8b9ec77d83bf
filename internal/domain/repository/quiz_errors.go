package repository

import "errors"

var (
	// ErrAlreadyRegistered означает unique violation по паре (user, quiz)
	// при вставке регистрации.
	ErrAlreadyRegistered = errors.New("already registered for this quiz")

	// ErrDuplicateAnswer означает unique violation по паре (user, question)
	// при вставке ответа.
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
)
