package ir

// Param is a named method parameter.
type Param struct {
	Name string
	Type Type
}

// Method is the single method of an operator implementation.
type Method struct {
	Name string
	// Receiver is "self"; the operator consumes its left operand.
	Receiver string
	Params   []Param
	Result   Type
	Body     Expr
}

// ImplFragment is an emitted trait implementation:
//
//	impl<Generics> Trait for SelfType where ... {
//	    type Output = Output;
//	    fn method(self, rhs: Scalar) -> Output { Body }
//	}
type ImplFragment struct {
	Decl     string
	Operator string
	Generics Generics
	Trait    Type
	SelfType Type
	Output   Type
	Scalar   string
	Method   Method
}
