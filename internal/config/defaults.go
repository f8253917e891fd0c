package config

const (
	// DefaultTestsDir is the built-in tests root, resolved next to the executable
	DefaultTestsDir = "tests"
	// DefaultGlobalFixture is the name of the global fixture file inside the tests root
	DefaultGlobalFixture = "tests.sh"
	// DefaultShell is the interpreter used for introspection and execution
	DefaultShell = "bash"
	// DefaultOrder is the default nesting of devices and test units
	DefaultOrder = OrderDeviceMajor
	// SuiteFileName is the optional suite configuration file inside the tests root
	SuiteFileName = "batrun.yaml"
	// EnvFileName is the optional dotenv file inside the tests root
	EnvFileName = ".env"
)

const (
	// OrderDeviceMajor runs every test unit for a device before moving to the next device
	OrderDeviceMajor = "device-major"
	// OrderUnitMajor runs a test unit on every device before moving to the next unit
	OrderUnitMajor = "unit-major"
)

// Environment variables read by Load
const (
	EnvTestsDir = "BATRUN_TESTS_DIR"
	EnvOutDir   = "BATRUN_OUT_DIR"
	EnvShell    = "BATRUN_SHELL"
)

// DefaultTestFilePatterns are the file name patterns of test units
var DefaultTestFilePatterns = []string{
	"*.sh",
}
