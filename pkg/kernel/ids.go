package kernel

import "github.com/google/uuid"

// RecordID identifies an uploaded student record.
type RecordID string

func NewRecordID() RecordID       { return RecordID(uuid.NewString()) }
func (r RecordID) String() string { return string(r) }
func (r RecordID) IsEmpty() bool  { return string(r) == "" }
