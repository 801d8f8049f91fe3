/*
Package seamcarve is a content aware image resize library, which shrinks the source image
horizontally by repeatedly removing the vertical seam of pixels with the lowest energy.

The energy of the image is computed once, as the Sobel gradient magnitude of its grayscale
version, and afterwards contracted together with the pixel buffer every time a seam is removed.

The package provides a command line interface, check the supported flags with:

	$ seamcarve --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/seamcarve"
	)

	func main() {
		p := &seamcarve.Processor{
			RetainRatio: 0.8,
		}

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error rescaling image: %s", err.Error())
		}
	}
*/
package seamcarve
