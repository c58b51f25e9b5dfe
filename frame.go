package main

// FrameSize returns the number of bytes a function needs for its locals:
// the sum of the sizes of every variable declared anywhere in its body,
// nested blocks, for initializers and if branches included. Parameters
// live above the frame and are not counted.
func FrameSize(def *FuncDef, info *Info) int {
	if def.Body == nil {
		return 0
	}
	return frameSize(def.Body, info)
}

func frameSize(node Node, info *Info) int {
	switch n := node.(type) {
	case *VarDecl:
		size := 0
		for _, sym := range info.Defs[n] {
			size += sym.Type.Size()
		}
		return size
	case *Block:
		size := 0
		for _, stmt := range n.Stmts {
			size += frameSize(stmt, info)
		}
		return size
	case *For:
		size := 0
		for _, init := range n.Inits {
			size += frameSize(init, info)
		}
		return size + frameSize(n.Body, info)
	case *If:
		return frameSize(n.Then, info)
	case *IfElse:
		return frameSize(n.Then, info) + frameSize(n.Else, info)
	default:
		return 0
	}
}
