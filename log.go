package eiforest

import "github.com/sirupsen/logrus"

var log = logrus.WithField("component", "eiforest")
