// Command run inspects WebAssembly modules running on ByteBuf-backed memory.
package main

func main() {
	execute()
}
