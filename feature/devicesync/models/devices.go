package models

import "time"

// Cost is a throughput-cost unit: the per-operation charge reported by the
// destination store and the upstream APIs, accumulated per phase for cost
// observability.
type Cost float64

// ProtectionDevice is an immutable snapshot of a device as reported by the
// endpoint-protection platform.
type ProtectionDevice struct {
	// ID is the platform-internal device identifier.
	ID string `json:"id"`

	// DirectoryDeviceID is the directory-service device identifier, when the
	// device is directory-joined. It is the highest-confidence join key.
	DirectoryDeviceID *string `json:"directoryDeviceId,omitempty"`

	// Hostname is the device hostname as seen by the protection agent.
	Hostname string `json:"hostname"`

	// SerialNumber is the hardware serial, when the platform reports one.
	SerialNumber *string `json:"serialNumber,omitempty"`

	// RiskLevel is the platform's risk classification (e.g. low, medium, high).
	RiskLevel string `json:"riskLevel"`

	// HealthStatus is the sensor health state (e.g. active, inactive).
	HealthStatus string `json:"healthStatus"`

	// FirstSeen is when the platform first observed the device.
	FirstSeen time.Time `json:"firstSeen"`

	// LastSeen is when the platform last observed the device.
	LastSeen time.Time `json:"lastSeen"`
}

// ManagedDevice is an immutable snapshot of a device as reported by the
// mobile-device-management platform.
type ManagedDevice struct {
	// ID is the platform-internal device identifier.
	ID string `json:"id"`

	// DirectoryDeviceID is the directory-service device identifier, when present.
	DirectoryDeviceID *string `json:"directoryDeviceId,omitempty"`

	// DeviceName is the device name as registered in the MDM.
	DeviceName string `json:"deviceName"`

	// SerialNumber is the hardware serial, when the platform reports one.
	SerialNumber *string `json:"serialNumber,omitempty"`

	// ComplianceState is the MDM compliance verdict (e.g. compliant, noncompliant).
	ComplianceState string `json:"complianceState"`

	// ManagementAgent identifies the managing agent (e.g. mdm, configurationManager).
	ManagementAgent string `json:"managementAgent"`

	// OperatingSystem is the reported OS name.
	OperatingSystem string `json:"operatingSystem"`

	// EnrolledAt is when the device enrolled into management.
	EnrolledAt time.Time `json:"enrolledAt"`

	// LastSyncAt is when the device last checked in.
	LastSyncAt time.Time `json:"lastSyncAt"`
}
