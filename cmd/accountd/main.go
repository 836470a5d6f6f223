package main

import accountdcmd "go.lumeweb.com/accountd/cmd"

func main() {
	accountdcmd.Main()
}
