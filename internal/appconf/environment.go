package appconf

// Environment selects defaults that differ between local runs, tests and
// production batch jobs.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps an -env flag value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch env {
	case "development":
		return Development
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}

// Config holds the settings shared by every command.
type Config struct {
	Env      Environment
	Verbose  bool
	LogLevel string
	LogFile  string
}
