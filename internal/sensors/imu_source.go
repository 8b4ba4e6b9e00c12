// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// accelReader is the part of the MPU9250 driver the IMU source needs.
type accelReader interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
}

// IMU derives device attitude from an MPU9250 accelerometer. Yaw stays at 0
// because there is no heading reference.
type IMU struct {
	name string
	dev  accelReader
	loop tickLoop
}

// NewIMU initializes an MPU9250 over SPI.
func NewIMU(spiDev, csPin string) (*IMU, error) {
	name := spiDev
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport: %w", name, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	if _, err := dev.SelfTest(); err != nil {
		log.Printf("sensors: warning: %s IMU self-test failed: %v", name, err)
	}
	if err := dev.Calibrate(); err != nil {
		log.Printf("sensors: warning: %s IMU calibration failed: %v", name, err)
	} else {
		log.Printf("sensors: %s IMU calibration complete", name)
	}

	return &IMU{name: name, dev: dev}, nil
}

func (s *IMU) IsAvailable() bool { return s != nil && s.dev != nil }

func (s *IMU) IsActive() bool { return s.loop.active() }

func (s *IMU) Subscribe(rateHz float64, fn func(orientation.RawSample, error)) error {
	if !s.IsAvailable() {
		return orientation.ErrSensorUnavailable
	}
	return s.loop.start(rateHz, nil, func(t time.Time) {
		fn(s.ReadSample(t))
	})
}

func (s *IMU) Unsubscribe() error {
	s.loop.stop()
	return nil
}

// ReadSample reads the accelerometer once and converts it to a sample.
func (s *IMU) ReadSample(t time.Time) (orientation.RawSample, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return orientation.RawSample{}, fmt.Errorf("%s IMU accel X: %w", s.name, err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return orientation.RawSample{}, fmt.Errorf("%s IMU accel Y: %w", s.name, err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return orientation.RawSample{}, fmt.Errorf("%s IMU accel Z: %w", s.name, err)
	}
	return sampleFromAccel(float64(ax), float64(ay), float64(az), t)
}

// sampleFromAccel uses the simple tilt formulas
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Raw counts are fine, only ratios matter.
func sampleFromAccel(ax, ay, az float64, t time.Time) (orientation.RawSample, error) {
	a := r3.Vec{X: ax, Y: ay, Z: az}
	n := r3.Norm(a)
	if n == 0 {
		return orientation.RawSample{}, fmt.Errorf("zero acceleration vector")
	}

	roll := math.Atan2(ay, az)
	pitch := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))
	q := orientation.QuaternionFromEuler(0, pitch, roll)

	s := sampleFromQuaternion(q, t)
	// At rest the accelerometer measures the reaction to gravity.
	s.Gravity = r3.Scale(-1/n, a)
	return s, nil
}
