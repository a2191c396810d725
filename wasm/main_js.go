//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/voxmesh/api"
	"github.com/voxelsplace/voxmesh/mesh"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// options reads an optional {cellSize, padding, centerOrigin, cellPixels} object.
func options(args []js.Value, i int) mesh.Options {
	opts := mesh.DefaultOptions()
	if len(args) <= i || args[i].Type() != js.TypeObject {
		return opts
	}
	o := args[i]
	if v := o.Get("cellSize"); v.Type() == js.TypeNumber {
		opts.CellSize = float32(v.Float())
	}
	if v := o.Get("padding"); v.Type() == js.TypeNumber {
		opts.Padding = v.Int()
	}
	if v := o.Get("centerOrigin"); v.Type() == js.TypeBoolean {
		opts.CenterOrigin = v.Bool()
	}
	if v := o.Get("cellPixels"); v.Type() == js.TypeNumber {
		opts.CellPixels = v.Int()
	}
	return opts
}

func bundleToJS(b api.OBJBundle) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("obj", bytesToJS(b.OBJ))
	result.Set("mtl", bytesToJS(b.MTL))
	result.Set("png", bytesToJS(b.PNG))
	return result
}

// vox2obj(bytes, name, options?) -> {obj, mtl, png}
func vox2obj(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing vox bytes or name")
	}
	out, err := api.VOXToOBJ(bytesFromJS(args[0]), args[1].String(), options(args, 2))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bundleToJS(out)
}

// vox2stl(bytes, options?) -> Uint8Array
func vox2stl(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vox bytes")
	}
	out, err := api.VOXToSTL(bytesFromJS(args[0]), options(args, 1))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// vox2glb(bytes, name, options?) -> Uint8Array
func vox2glb(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing vox bytes or name")
	}
	out, err := api.VOXToGLB(bytesFromJS(args[0]), args[1].String(), options(args, 2))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// vopl2obj(bytes, name, options?) -> {obj, mtl, png}
func vopl2obj(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing vopl bytes or name")
	}
	out, err := api.VOPLToOBJ(bytesFromJS(args[0]), args[1].String(), options(args, 2))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bundleToJS(out)
}

func vopl2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vopl bytes")
	}
	out, err := api.VOPLToGLB(bytesFromJS(args[0]), "chunk", options(args, 1))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func packVopls(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackVOPLs(files)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func unpackVoplpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackVOPLPACKToMemory(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

func main() {
	js.Global().Set("vox2obj", js.FuncOf(vox2obj))
	js.Global().Set("vox2stl", js.FuncOf(vox2stl))
	js.Global().Set("vox2glb", js.FuncOf(vox2glb))
	js.Global().Set("vopl2obj", js.FuncOf(vopl2obj))
	js.Global().Set("vopl2glb", js.FuncOf(vopl2glb))
	js.Global().Set("packVopls", js.FuncOf(packVopls))
	js.Global().Set("unpackVoplpack", js.FuncOf(unpackVoplpack))
	select {}
}
