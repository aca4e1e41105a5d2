// Prosim runs process simulations built with the prosim engine.
package main

func main() {
	Execute()
}
