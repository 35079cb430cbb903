// Command debugkey prints the bcrypt hash to put in DEBUG_KEY_HASH.
//
//	debugkey <key>
//	echo -n <key> | debugkey
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/maingk/setback-game/internal/auth"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()

	var key string
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.WithError(err).Fatal("read key from stdin")
		}
		key = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashDebugKey(key)
	if err != nil {
		log.WithError(err).Fatal("hash debug key")
	}
	fmt.Println(hash)
}
