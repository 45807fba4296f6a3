package platform

import (
	"fyne.io/fyne/v2"
)

// DeviceClass is the broad form factor the app is running on.
type DeviceClass string

const (
	DevicePhone   DeviceClass = "phone"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// tabletShortestSide separates phones from tablets on mobile drivers.
const tabletShortestSide = 600

// CurrentDeviceClass reports the class of the running device. size is the window or screen size.
func CurrentDeviceClass(size fyne.Size) DeviceClass {
	device := fyne.CurrentDevice()
	return ClassifyDevice(device != nil && device.IsMobile(), size)
}

// ClassifyDevice maps a mobile flag and screen size to a device class.
func ClassifyDevice(mobile bool, size fyne.Size) DeviceClass {
	if !mobile {
		return DeviceDesktop
	}
	if shortestSide(size) >= tabletShortestSide {
		return DeviceTablet
	}
	return DevicePhone
}

// AreaScale shrinks the motion area on larger devices.
func AreaScale(class DeviceClass) float64 {
	switch class {
	case DeviceTablet:
		return 0.8
	case DeviceDesktop:
		return 0.7
	default:
		return 1
	}
}

// Margins returns the horizontal and vertical padding of screens on the device class.
func Margins(class DeviceClass) (float32, float32) {
	switch class {
	case DeviceTablet:
		return 60, 80
	case DeviceDesktop:
		return 80, 100
	default:
		return 24, 40
	}
}

func shortestSide(size fyne.Size) float32 {
	if size.Width < size.Height {
		return size.Width
	}
	return size.Height
}
