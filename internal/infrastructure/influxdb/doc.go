// Package influxdb provides optional time-series telemetry for the energy
// economy.
//
// When enabled, every decay tick and transfer commit records the affected
// balances to the energy_balance measurement, and each committed transfer
// is recorded to energy_transfer. Writes are batched and non-blocking, so
// a slow or absent InfluxDB never backpressures the decay engine or the
// transfer path; async failures surface through the SetOnError callback.
//
// The package satisfies the energy package's Telemetry interface.
package influxdb
