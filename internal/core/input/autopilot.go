package input

import (
	"github.com/zeusync/circuit/internal/core/race/vehicle"
)

// Autopilot drives the player car in headless races. It follows a wrapped
// source, normally a pursuit pilot, and makes a pit stop when it crosses a
// refuel zone with less than LowFuel left, holding the brake until the tank
// reaches FullFuel.
type Autopilot struct {
	driver   vehicle.ControlSource
	LowFuel  float64
	FullFuel float64

	refuelling bool
}

var _ vehicle.ControlSource = (*Autopilot)(nil)

func NewAutopilot(driver vehicle.ControlSource) *Autopilot {
	return &Autopilot{driver: driver, LowFuel: 0.4, FullFuel: 1}
}

func (a *Autopilot) Control(s vehicle.Situation) vehicle.Control {
	if s.InRefuelZone && (a.refuelling || s.FuelRatio < a.LowFuel) {
		if s.FuelRatio < a.FullFuel {
			a.refuelling = true
			return vehicle.Control{HardBrake: true}
		}
	}
	a.refuelling = false
	return a.driver.Control(s)
}
