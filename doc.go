/*
Package tendril is a small appliance automation controller.

It keeps a registry of stateful I/O components (counters, timers, digital and
PWM outputs, digital and analog inputs, media players) and a list of
declarative rules, called events, that watch component state and trigger
actions on other components.

# Concept

An event is a trigger condition, an effect and an optional
activate/deactivate pair. The controller evaluates every event in declaration
order once per tick. An effect is visible to every later event of the same
pass and to earlier events on the next pass, so the order of EVENTS in a
definition is significant.

Definitions are plain documents:

	{
	  "COMPONENTS": {"COUNTER": [{"LABEL": "pours", "VALUE": 0}]},
	  "EVENTS": [{
	    "LABEL": "refill",
	    "CONDITIONS": [{"LABEL": "pours", "METHOD": "less_than", "VALUE": 1}],
	    "EFFECTS": [{"LABEL": "pours", "METHOD": "increase_value", "ARG": 5}]
	  }]
	}

# Architecture

The core is hexagonal. pkg/domain holds the pure types, pkg/ports the driven
interfaces (drivers, stores, update sources, snapshot sinks, locks) and
pkg/adapters the implementations: file, memory, redis and sqlite stores, an
HTTP status API, simulated drivers and a process-spawning media backend.

# Usage

	ctrl, err := tendril.New(
		tendril.WithStore(file.NewStore("./data")),
		tendril.WithDrivers(tendril.Drivers{GPIO: sim.NewGPIO(), ADC: sim.NewADC()}),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := ctrl.Run(ctx); err != nil {
		log.Fatal(err)
	}

Run blocks until the context is cancelled. Tick, Sync and PublishFeed expose
the three cadences of the loop for callers that drive it themselves.
*/
package tendril
