package utils

import (
	"github.com/vuuvv/simlink/log"
)

func NormalRecover() {
	if r := recover(); r != nil {
		log.Error(r)
	}
}

func Catch(handler func(reason any)) {
	if r := recover(); r != nil {
		log.Error(r)
		handler(r)
	}
}

func SafeCall(fn func()) {
	defer NormalRecover()
	fn()
}
