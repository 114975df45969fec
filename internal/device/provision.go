package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// provisioningFile is the YAML structure of devices.yaml.
type provisioningFile struct {
	Devices []provisionedDevice `yaml:"devices"`
}

// provisionedDevice is one device entry in the provisioning file.
type provisionedDevice struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	SharedSecret    string  `yaml:"shared_secret"`
	On              bool    `yaml:"is_on"`
	EnergyBalance   float64 `yaml:"energy_balance"`
	ConsumptionRate float64 `yaml:"consumption_rate"`
}

// LoadProvisioning reads the static device fleet from a YAML file.
//
// The file is the single source of device identity: all devices exist from
// process start, and there is no runtime registration. Validation rejects
// duplicate IDs, missing credentials, and negative energy quantities.
func LoadProvisioning(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provisioning file: %w", err)
	}

	var file provisioningFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing provisioning file: %w", err)
	}

	if len(file.Devices) == 0 {
		return nil, fmt.Errorf("%w: no devices defined", ErrInvalidProvisioning)
	}

	seen := make(map[string]bool, len(file.Devices))
	devices := make([]Device, 0, len(file.Devices))

	for i, pd := range file.Devices {
		if pd.ID == "" {
			return nil, fmt.Errorf("%w: device %d has no id", ErrInvalidProvisioning, i)
		}
		if seen[pd.ID] {
			return nil, fmt.Errorf("%w: duplicate device id %q", ErrInvalidProvisioning, pd.ID)
		}
		seen[pd.ID] = true

		if pd.SharedSecret == "" {
			return nil, fmt.Errorf("%w: device %q has no shared_secret", ErrInvalidProvisioning, pd.ID)
		}
		if pd.EnergyBalance < 0 {
			return nil, fmt.Errorf("%w: device %q has negative energy_balance", ErrInvalidProvisioning, pd.ID)
		}
		if pd.ConsumptionRate < 0 {
			return nil, fmt.Errorf("%w: device %q has negative consumption_rate", ErrInvalidProvisioning, pd.ID)
		}

		name := pd.Name
		if name == "" {
			name = pd.ID
		}

		devices = append(devices, Device{
			ID:              pd.ID,
			Name:            name,
			SharedSecret:    pd.SharedSecret,
			On:              pd.On,
			EnergyBalance:   pd.EnergyBalance,
			ConsumptionRate: pd.ConsumptionRate,
		})
	}

	return devices, nil
}
