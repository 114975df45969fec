// Package device provides the Device Registry for Lumen Core.
//
// The registry is the canonical in-memory record of every bulb in the
// fleet: identity, shared credential, power state, energy balance, and
// last-seen timestamp. It is the single owner of device state — the
// realtime protocol handler, the energy transfer service, and the decay
// engine all read and mutate through it, never holding independent copies.
//
// # Key Types
//
//   - Device: one provisioned bulb (identity + mutable runtime state)
//   - Store: the registry, with a per-device locking contract
//   - Oracle: presence derivation from last-seen recency
//
// # Concurrency
//
// The fleet is fixed at construction, so the registry map is immutable.
// Each device carries its own mutex: Mutate serialises all writers touching
// that device, and MutatePair takes both locks in lexicographic ID order so
// opposing transfers on the same pair cannot deadlock. Every accessor
// returns clones; callers never see the canonical record.
//
// # Usage
//
//	devices, err := device.LoadProvisioning("configs/devices.yaml")
//	if err != nil {
//	    return err
//	}
//	store := device.NewStore(devices)
//	store.SetLogger(log)
//
//	store.Mutate("bulb-01", func(d *device.Device) { d.On = true })
//	oracle := device.NewOracle(store, 90*time.Second)
//	oracle.Online("bulb-01")
package device
