package main

import (
	"flag"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", ":8080", "адрес HTTP сервера")
	debug := flag.Bool("debug", true, "писать на страницу события заметания")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	a := &app{log: log, debug: *debug}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("[app] Сервер запущен", zap.String("addr", *addr))
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("[app] Сервер остановлен", zap.Error(err))
	}
}
