// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

// Matrix support is limited to the 4x4 transforms needed when carrying
// planes between coordinate systems. The members are explicitly
// indexed, Row-Major:
//	  [Xx, Xy, Xz, Xw]  X-Axis
//	  [Yx, Yy, Yz, Yw]  Y-Axis
//	  [Zx, Zy, Zz, Zw]  Z-Axis
//	  [Wx, Wy, Wz, Ww]  Translation vector, Ww == 1.

// M4 is a 4x4 matrix where the matrix elements are individually
// addressable.
type M4 struct {
	Xx, Xy, Xz, Xw float64 // indices 0, 1, 2, 3    [00, 01, 02, 03]
	Yx, Yy, Yz, Yw float64 // indices 4, 5, 6, 7    [10, 11, 12, 13]
	Zx, Zy, Zz, Zw float64 // indices 8, 9, 10, 11  [20, 21, 22, 23]
	Wx, Wy, Wz, Ww float64 // indices 12, 13, 14, 15[30, 31, 32, 33]
}

// M4I is the 4x4 identity matrix.
var M4I = M4{
	Xx: 1,
	Yy: 1,
	Zz: 1,
	Ww: 1,
}

// MultMv4 returns the multiplication of matrix m with the column
// vector (x, y, z, w).
func (m *M4) MultMv4(x, y, z, w float64) (mx, my, mz, mw float64) {
	mx = m.Xx*x + m.Xy*y + m.Xz*z + m.Xw*w
	my = m.Yx*x + m.Yy*y + m.Yz*z + m.Yw*w
	mz = m.Zx*x + m.Zy*y + m.Zz*z + m.Zw*w
	mw = m.Wx*x + m.Wy*y + m.Wz*z + m.Ww*w
	return mx, my, mz, mw
}
