package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"

	"batrun/internal/domain"
	"batrun/internal/parser"
)

// DeviceTableName is the variable the global fixture declares its devices in
const DeviceTableName = "KNOWN_DEVICES"

var (
	ErrMissingGlobalFixture = errors.New("global fixture not found")
	ErrMissingDeviceTable   = errors.New("global fixture does not declare " + DeviceTableName)
	ErrMalformedDeviceTable = errors.New(DeviceTableName + " must be an indexed or associative array")
)

// deviceTableScript prints the shape of KNOWN_DEVICES followed by its
// key/value pairs. setup and teardown are never called.
const deviceTableScript = `exec 3>&1 1>&2
source "$BATRUN_FILE"
if ! __batrun_decl=$(declare -p KNOWN_DEVICES 2>/dev/null); then
	printf 'missing\0' >&3
	exit 0
fi
if [[ $__batrun_decl =~ ^declare\ -[a-zA-Z]*A ]]; then
	printf 'assoc\0' >&3
elif [[ $__batrun_decl =~ ^declare\ -[a-zA-Z]*a ]]; then
	printf 'indexed\0' >&3
else
	printf 'scalar\0' >&3
	exit 0
fi
for __batrun_key in "${!KNOWN_DEVICES[@]}"; do
	printf '%s\0%s\0' "$__batrun_key" "${KNOWN_DEVICES[$__batrun_key]}" >&3
done
`

// KnownDevices loads the device table declared by the global fixture without
// running its setup or teardown.
func (p *Parser) KnownDevices(ctx context.Context, fixturePath string) ([]domain.Device, error) {
	if err := checkFixture(fixturePath); err != nil {
		return nil, err
	}

	out, err := p.introspect(ctx, fixturePath, deviceTableScript)
	if err != nil {
		return nil, err
	}

	table, err := parser.ParseDeviceTable(out)
	if err != nil {
		return nil, fmt.Errorf("error reading device table of %s: %w", fixturePath, err)
	}

	switch table.Kind {
	case parser.TableMissing:
		return nil, fmt.Errorf("%w: %s", ErrMissingDeviceTable, fixturePath)
	case parser.TableScalar:
		return nil, fmt.Errorf("%w: %s", ErrMalformedDeviceTable, fixturePath)
	}

	devices := make([]domain.Device, 0, len(table.Entries))
	for _, entry := range table.Entries {
		devices = append(devices, domain.Device{Label: entry.Label, Value: entry.Value})
	}
	return devices, nil
}

// checkFixture reports ErrMissingGlobalFixture when path does not exist
func checkFixture(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingGlobalFixture, path)
	}
	return nil
}
