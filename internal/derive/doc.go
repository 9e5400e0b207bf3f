// Package derive synthesizes scalar-operator implementations for record
// types.
//
// Given a struct with positional or named fields and a mul-like operator
// (Mul, Div, Rem, Shl, Shr), Expand produces an ir.ImplFragment whose
// method applies the operator field-wise with one scalar operand:
//
//	impl<__rhs_T: Copy> Mul<__rhs_T> for Point
//	where
//	    f32: Mul<__rhs_T, Output = f32>,
//	{
//	    type Output = Point;
//	    fn mul(self, rhs: __rhs_T) -> Point {
//	        Point { x: self.x.mul(rhs), y: self.y.mul(rhs) }
//	    }
//	}
//
// The package is pure: no I/O, no shared state, and repeated calls with
// equal inputs return structurally identical fragments. It never checks
// whether the emitted bounds are satisfiable; that is left to the Rust
// compiler.
package derive
