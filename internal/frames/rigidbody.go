package frames

import (
	"math"

	"rlreplay.dev/internal/attributes"
)

// QuatToEuler converts a unit quaternion to roll, pitch and yaw in radians.
// The pitch asin argument is clamped at the poles.
func QuatToEuler(q attributes.Quaternion) (roll, pitch, yaw float32) {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)

	sinr := 2 * (w*x + y*z)
	cosr := 1 - 2*(x*x+y*y)
	roll = float32(math.Atan2(sinr, cosr))

	sinp := 2 * (w*y - z*x)
	if math.Abs(sinp) >= 1 {
		pitch = float32(math.Copysign(math.Pi/2, sinp))
	} else {
		pitch = float32(math.Asin(sinp))
	}

	siny := 2 * (w*z + x*y)
	cosy := 1 - 2*(y*y+z*z)
	yaw = float32(math.Atan2(siny, cosy))
	return roll, pitch, yaw
}

// RigidBodySeries stores a body's pose and velocities one column per axis.
type RigidBodySeries struct {
	Sleeping *Series[bool]    `json:"sleeping"`
	PosX     *Series[float32] `json:"pos_x"`
	PosY     *Series[float32] `json:"pos_y"`
	PosZ     *Series[float32] `json:"pos_z"`
	Roll     *Series[float32] `json:"roll"`
	Pitch    *Series[float32] `json:"pitch"`
	Yaw      *Series[float32] `json:"yaw"`
	VelX     *Series[float32] `json:"vel_x"`
	VelY     *Series[float32] `json:"vel_y"`
	VelZ     *Series[float32] `json:"vel_z"`
	AngVelX  *Series[float32] `json:"ang_vel_x"`
	AngVelY  *Series[float32] `json:"ang_vel_y"`
	AngVelZ  *Series[float32] `json:"ang_vel_z"`
}

func NewRigidBodySeries(capacity, start int) *RigidBodySeries {
	f := func() *Series[float32] { return NewSeries[float32](capacity, start) }
	return &RigidBodySeries{
		Sleeping: NewSeries[bool](capacity, start),
		PosX:     f(),
		PosY:     f(),
		PosZ:     f(),
		Roll:     f(),
		Pitch:    f(),
		Yaw:      f(),
		VelX:     f(),
		VelY:     f(),
		VelZ:     f(),
		AngVelX:  f(),
		AngVelY:  f(),
		AngVelZ:  f(),
	}
}

func (b *RigidBodySeries) floats() []*Series[float32] {
	return []*Series[float32]{
		b.PosX, b.PosY, b.PosZ,
		b.Roll, b.Pitch, b.Yaw,
		b.VelX, b.VelY, b.VelZ,
		b.AngVelX, b.AngVelY, b.AngVelZ,
	}
}

func (b *RigidBodySeries) Extend(tick int) {
	b.Sleeping.Extend(tick)
	for _, s := range b.floats() {
		s.Extend(tick)
	}
}

// Record stores rb at tick. With ignoreSleeping set, sleeping bodies leave
// the carried-forward values in place.
func (b *RigidBodySeries) Record(tick int, rb attributes.RigidBody, ignoreSleeping bool) {
	if ignoreSleeping && rb.Sleeping {
		return
	}
	b.Sleeping.Set(tick, rb.Sleeping)
	b.PosX.Set(tick, rb.Location.X)
	b.PosY.Set(tick, rb.Location.Y)
	b.PosZ.Set(tick, rb.Location.Z)
	roll, pitch, yaw := QuatToEuler(rb.Rotation)
	b.Roll.Set(tick, roll)
	b.Pitch.Set(tick, pitch)
	b.Yaw.Set(tick, yaw)
	setVec := func(xs, ys, zs *Series[float32], v *attributes.Vector3f) {
		if v == nil {
			xs.Clear(tick)
			ys.Clear(tick)
			zs.Clear(tick)
			return
		}
		xs.Set(tick, v.X)
		ys.Set(tick, v.Y)
		zs.Set(tick, v.Z)
	}
	setVec(b.VelX, b.VelY, b.VelZ, rb.LinearVelocity)
	setVec(b.AngVelX, b.AngVelY, b.AngVelZ, rb.AngularVelocity)
}

func (b *RigidBodySeries) Clear(tick int) {
	b.Sleeping.Clear(tick)
	for _, s := range b.floats() {
		s.Clear(tick)
	}
}

// View returns the pose at tick, or nil when the position is undefined.
func (b *RigidBodySeries) View(tick int) *BodyView {
	x, ok := b.PosX.Get(tick)
	if !ok {
		return nil
	}
	y, _ := b.PosY.Get(tick)
	z, _ := b.PosZ.Get(tick)
	roll, _ := b.Roll.Get(tick)
	pitch, _ := b.Pitch.Get(tick)
	yaw, _ := b.Yaw.Get(tick)
	v := &BodyView{Pos: [3]float32{x, y, z}, Rot: [3]float32{roll, pitch, yaw}}
	if vx, ok := b.VelX.Get(tick); ok {
		vy, _ := b.VelY.Get(tick)
		vz, _ := b.VelZ.Get(tick)
		v.Vel = &[3]float32{vx, vy, vz}
	}
	return v
}
