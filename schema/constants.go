package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// StorageBackend represents the persistence backend for session state.
	StorageBackend string

	// WorkoutKind represents the category of a workout session.
	WorkoutKind string

	// ClockMode represents the direction a lifecycle clock counts in.
	ClockMode string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All storage backends supported for session state.
const (
	FileBackend   StorageBackend = "file" // default, single JSON record
	SQLiteBackend StorageBackend = "sqlite"
	NoneBackend   StorageBackend = "none"
)

// Well-known workout kinds. The app may pass other values; these are
// only used for display grouping.
const (
	StrengthWorkout WorkoutKind = "strength"
	CardioWorkout   WorkoutKind = "cardio"
	MobilityWorkout WorkoutKind = "mobility"
)

// All clock modes supported.
const (
	ElapsedMode   ClockMode = "elapsed"   // counts up from a start anchor
	CountdownMode ClockMode = "countdown" // counts down toward an end anchor
)
