// Command agecam estimates the age of faces seen by a webcam.
package main

func main() {
	Execute()
}
