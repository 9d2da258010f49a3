package auditerr

// ErrorClass categorizes errors by their nature.
type ErrorClass string

const (
	// ErrorClassInfrastructure indicates environment or setup issues
	// Examples: log directory missing, binary missing, fork limits reached
	ErrorClassInfrastructure ErrorClass = "infrastructure"

	// ErrorClassSemantic indicates input or configuration issues
	ErrorClassSemantic ErrorClass = "semantic"

	// ErrorClassTransient indicates failures that may not recur next cycle
	// Examples: network probe failure, worker killed
	ErrorClassTransient ErrorClass = "transient"
)

// DefaultClassForCode returns the default error class for a given error code.
func DefaultClassForCode(code string) ErrorClass {
	switch code {
	case ErrCodeSpawnFailed, ErrCodeLoggingFailed, ErrCodeBinaryNotFound:
		return ErrorClassInfrastructure
	case ErrCodeInvalidConfig:
		return ErrorClassSemantic
	case ErrCodeAbnormalTermination, ErrCodeCheckDegraded, ErrCodeTimeout, ErrCodeExecutionFailed:
		return ErrorClassTransient
	default:
		// Unknown error codes default to transient
		return ErrorClassTransient
	}
}
