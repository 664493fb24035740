package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// Matrices are column-major with column vectors: translation is column 3
// and the three basis columns carry rotation times per-axis scale.
// Skewed bases are not supported; scale and rotation read back from a
// skewed matrix are undefined.

func (s *Store) SetLocalPosition(e ecs.Entity, v mgl32.Vec3) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return err
	}
	s.local[t] = withTranslation(s.local[t], v)
	return s.Apply(t)
}

func (s *Store) LocalPosition(e ecs.Entity) (mgl32.Vec3, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return translation(s.local[t]), nil
}

// SetLocalRotation replaces the orientation of the local basis and keeps its
// per-axis scale.
func (s *Store) SetLocalRotation(e ecs.Entity, q mgl32.Quat) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return err
	}
	s.local[t] = withRotation(s.local[t], q)
	return s.Apply(t)
}

func (s *Store) LocalRotation(e ecs.Entity) (mgl32.Quat, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Quat{}, err
	}
	return rotation(s.local[t]), nil
}

// SetLocalScale rescales each basis column to the requested magnitude,
// keeping its direction. A zero-length column is rebuilt along its axis.
func (s *Store) SetLocalScale(e ecs.Entity, v mgl32.Vec3) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return err
	}
	m := s.local[t]
	old := basisScale(m)
	for i := 0; i < 3; i++ {
		col := m.Col(i).Vec3()
		if old[i] == 0 {
			col = mgl32.Vec3{}
			col[i] = 1
		} else {
			col = col.Mul(1 / old[i])
		}
		m.SetCol(i, col.Mul(v[i]).Vec4(0))
	}
	s.local[t] = m
	return s.Apply(t)
}

func (s *Store) LocalScale(e ecs.Entity) (mgl32.Vec3, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return basisScale(s.local[t]), nil
}

func (s *Store) LocalMatrix(e ecs.Entity) (mgl32.Mat4, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	return s.local[t], nil
}

// SetWorldPosition moves e in world space. See WorldWriteMode for what
// happens to local, descendants and the dirty flag.
func (s *Store) SetWorldPosition(e ecs.Entity, v mgl32.Vec3) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return err
	}
	return s.writeWorld(t, withTranslation(s.world[t], v))
}

func (s *Store) WorldPosition(e ecs.Entity) (mgl32.Vec3, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return translation(s.world[t]), nil
}

// SetWorldRotation orients e in world space, keeping its world scale. See
// WorldWriteMode for what happens to local, descendants and the dirty flag.
func (s *Store) SetWorldRotation(e ecs.Entity, q mgl32.Quat) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return err
	}
	return s.writeWorld(t, withRotation(s.world[t], q))
}

func (s *Store) WorldRotation(e ecs.Entity) (mgl32.Quat, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Quat{}, err
	}
	return rotation(s.world[t]), nil
}

func (s *Store) WorldScale(e ecs.Entity) (mgl32.Vec3, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return basisScale(s.world[t]), nil
}

func (s *Store) WorldMatrix(e ecs.Entity) (mgl32.Mat4, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	return s.world[t], nil
}

func (s *Store) writeWorld(t Index, m mgl32.Mat4) error {
	if s.worldWrites == WorldWriteDirect {
		s.world[t] = m
		return nil
	}
	base := s.parentWorld(t)
	if isSingular(base) {
		return fmt.Errorf("world write for %s: %w", s.entity[t], ErrSingularParent)
	}
	s.local[t] = base.Inv().Mul4(m)
	return s.Apply(t)
}

func translation(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

func withTranslation(m mgl32.Mat4, v mgl32.Vec3) mgl32.Mat4 {
	m.SetCol(3, v.Vec4(1))
	return m
}

func rotation(m mgl32.Mat4) mgl32.Quat {
	return mgl32.Mat4ToQuat(normalized(m)).Normalize()
}

func withRotation(m mgl32.Mat4, q mgl32.Quat) mgl32.Mat4 {
	r := scaleBasis(q.Normalize().Mat4(), basisScale(m))
	return withTranslation(r, translation(m))
}

// basisScale is the length of each basis column.
func basisScale(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}

// normalized returns m with unit-length basis columns. Zero columns stay zero.
func normalized(m mgl32.Mat4) mgl32.Mat4 {
	for i := 0; i < 3; i++ {
		col := m.Col(i).Vec3()
		if l := col.Len(); l != 0 {
			m.SetCol(i, col.Mul(1/l).Vec4(0))
		}
	}
	return m
}

// scaleBasis multiplies basis column i of m by scale[i].
func scaleBasis(m mgl32.Mat4, scale mgl32.Vec3) mgl32.Mat4 {
	for i := 0; i < 3; i++ {
		m.SetCol(i, m.Col(i).Vec3().Mul(scale[i]).Vec4(0))
	}
	return m
}
