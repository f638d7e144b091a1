package rengine

import (
	"github.com/rengine/rengine/internal/domain"
	"github.com/rengine/rengine/internal/registry"
)

// FactView is the read-only view of working memory handed to host-registered
// functions and method handlers, re-exported so hosts never need to import
// internal/registry directly.
type FactView = registry.FactView

// Public re-exports of the domain package's core types: host applications
// import only the rengine root package and never reach into internal/.
type (
	Value      = domain.Value
	Fact       = domain.Fact
	Handle     = domain.Handle
	Rule       = domain.Rule
	Pattern    = domain.Pattern
	Condition  = domain.Condition
	Predicate  = domain.Predicate
	Operand    = domain.Operand
	Action     = domain.Action
	Activation = domain.Activation
	FireReport = domain.FireReport
	Source     = domain.Source
	ErrCode    = domain.ErrCode
	EngineError = domain.EngineError
)

const (
	SourceExplicit         = domain.SourceExplicit
	SourceLogicallyDerived = domain.SourceLogicallyDerived
	SourceTemplate         = domain.SourceTemplate
)

const (
	PatternPositive = domain.PatternPositive
	PatternNot      = domain.PatternNot
	PatternExists   = domain.PatternExists
	PatternForall   = domain.PatternForall
)

const (
	ActionSet          = domain.ActionSet
	ActionInsert       = domain.ActionInsert
	ActionRetract      = domain.ActionRetract
	ActionModify       = domain.ActionModify
	ActionLog          = domain.ActionLog
	ActionCallFunction = domain.ActionCallFunction
	ActionMethodCall   = domain.ActionMethodCall
)

const (
	ErrCodeUnknownHandle        = domain.ErrCodeUnknownHandle
	ErrCodeUnknownField         = domain.ErrCodeUnknownField
	ErrCodeTypeError            = domain.ErrCodeTypeError
	ErrCodeUnknownFunction      = domain.ErrCodeUnknownFunction
	ErrCodeUnknownAction        = domain.ErrCodeUnknownAction
	ErrCodeCycleLimitReached    = domain.ErrCodeCycleLimitReached
	ErrCodeRuleCompilationError = domain.ErrCodeRuleCompilationError
	ErrCodeInvariantViolated    = domain.ErrCodeInvariantViolated
)

// ObjectField is a single named entry used to build an object Value via
// NewObject.
type ObjectField = domain.Field

// Value constructors, re-exported for host code building facts without
// importing internal/domain directly.
var (
	IntValue      = domain.IntValue
	FloatValue    = domain.FloatValue
	BoolValue     = domain.BoolValue
	StringValue   = domain.StringValue
	TimeValue     = domain.TimeValue
	ArrayValue    = domain.ArrayValue
	NewObject     = domain.NewObject
	ObjectFromMap = domain.ObjectFromMap
	FromNative    = domain.FromNative
)
