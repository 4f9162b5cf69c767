package utils

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	XConn *xgb.Conn
	XRoot xproto.Window
)

func InitX11() error {
	var err error
	XConn, err = xgb.NewConn()
	if err != nil {
		return err
	}

	setup := xproto.Setup(XConn)
	XRoot = setup.DefaultScreen(XConn).Root
	return nil
}

// RootScreenSize reports the pixel size of the default X11 screen so the
// window can cover the whole desktop.
func RootScreenSize() (int, int, error) {
	if XConn == nil {
		if err := InitX11(); err != nil {
			return 0, 0, fmt.Errorf("connect to X server: %w", err)
		}
	}

	screen := xproto.Setup(XConn).DefaultScreen(XConn)
	return int(screen.WidthInPixels), int(screen.HeightInPixels), nil
}

// CloseX11 drops the shared connection, if any.
func CloseX11() {
	if XConn != nil {
		XConn.Close()
		XConn = nil
	}
}
