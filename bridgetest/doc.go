// Package bridgetest feeds scripted input events to an application
// served by the bridge and collects its output events, so tests can
// assert on the exact message sequence without a real runtime.
package bridgetest
