package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPaperKey returns the cache key for an exam's student-facing paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamDurationKey returns the cache key for an exam's duration in seconds.
func (r *CacheKeyStruct) ExamDurationKey(examID string) string {
	return fmt.Sprintf("exam:%s:duration", examID)
}

// AttemptStartKey returns the cache key for a user's attempt start time.
func (r *CacheKeyStruct) AttemptStartKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:attempt_start", userID, examID)
}

// AutosavedAnswersKey returns the cache key for a user's autosaved answers.
func (r *CacheKeyStruct) AutosavedAnswersKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:answers", userID, examID)
}

var CacheKey = NewCacheKeyStruct()
